package logger

import "regexp"

var (
	// bcrypt hashes and any *password column literal
	passwordColumnRe = regexp.MustCompile(`(?i)(\w*password\w*\s*=\s*['"])([^'"]*)(['"])`)
	bcryptHashRe     = regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`)
	emailRe          = regexp.MustCompile(`([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]*(@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
)

// sanitizeSQL masks credentials and email addresses before SQL reaches the logs
func sanitizeSQL(sql string) string {
	sql = passwordColumnRe.ReplaceAllString(sql, `$1***$3`)
	sql = bcryptHashRe.ReplaceAllString(sql, `***`)
	return emailRe.ReplaceAllString(sql, `$1***$2`)
}
