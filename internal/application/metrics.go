package application

import "expvar"

// Counters published under /debug/vars.
var (
	metrics = expvar.NewMap("user_certification")
)

const (
	metricUsersCreated        = "users_created"
	metricUsersVerified       = "users_verified"
	metricCertificationFailed = "certification_delivery_failed"
	metricLogins              = "logins"
	metricPostsCreated        = "posts_created"
)

func count(name string) {
	metrics.Add(name, 1)
}
