package connector

import "database/sql"

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
	// PreparedStatements counts the statements held by the statement cache.
	PreparedStatements int `json:"prepared_statements"`
}

// StatsFromDB converts database/sql pool statistics.
func StatsFromDB(s sql.DBStats) ConnectionStats {
	return ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}
