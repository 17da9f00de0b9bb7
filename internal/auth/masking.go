package auth

// maskToken masks a token for log output, showing the first 3 and last 4
// characters. Short values are masked entirely.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:3] + "***" + token[len(token)-4:]
}
