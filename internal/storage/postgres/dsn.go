package postgres

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/tagnet-backend/config"
)

// DSN renders cfg as a libpq keyword/value string. Empty values are
// omitted so libpq falls back to its own defaults.
func DSN(cfg *config.DatabaseConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{}
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteValue(value))
		}
	}
	add("host", cfg.Host)
	if cfg.Port > 0 {
		add("port", fmt.Sprint(cfg.Port))
	}
	add("user", cfg.User)
	add("password", cfg.Password)
	add("dbname", cfg.Name)
	add("sslmode", sslmode)
	return strings.Join(parts, " ")
}

// quoteValue single-quotes values containing spaces, quotes or
// backslashes, escaping the latter two.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
