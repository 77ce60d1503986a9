package middlewares

const (
	ctxUserIDKey    = "auth.userID"
	ctxTokenJTIKey  = "auth.jti"
	ctxTokenExpKey  = "auth.expiresAt"
	CtxRequestIDKey = "request_id"
)
