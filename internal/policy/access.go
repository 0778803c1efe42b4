package policy

// Permit decides whether a request may be served. Remote callers are only
// let through when the engine was launched with external connections
// allowed, which in turn requires elevated privilege at startup.
func Permit(originIsLocal, allowExternal bool) bool {
	return allowExternal || originIsLocal
}
