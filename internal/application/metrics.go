package application

import "expvar"

// accountStats is published on /debug/vars under "accounts".
var accountStats = expvar.NewMap("accounts")

const (
	statCreated       = "created"
	statUpdated       = "updated"
	statActivated     = "activated"
	statInactivated   = "inactivated"
	statRotated       = "credentials_rotated"
	statNotifyFailed  = "notify_failed"
	statIndexFailed   = "index_failed"
	statLoginFailed   = "login_failed"
	statLoginSucceeded = "login_succeeded"
)
