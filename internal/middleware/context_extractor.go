// internal/middleware/context_extractor.go
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeys for storing request metadata
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyIPAddress ContextKey = "ip_address"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyUserID    ContextKey = "user_id"
)

const RequestIDHeader = "X-Request-ID"

// MetadataExtractor assigns a request id and copies the client address and
// user agent into the request context.
func MetadataExtractor() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(string(ContextKeyRequestID), requestID)

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, ContextKeyRequestID, requestID)
		if ip := c.ClientIP(); ip != "" {
			ctx = context.WithValue(ctx, ContextKeyIPAddress, ip)
		}
		if ua := c.Request.UserAgent(); ua != "" {
			ctx = context.WithValue(ctx, ContextKeyUserAgent, ua)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestIDFromContext extracts the request id from context
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// GetIPAddressFromContext extracts IP address from context
func GetIPAddressFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyIPAddress).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgentFromContext extracts user agent from context
func GetUserAgentFromContext(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// GetUserIDFromContext extracts the authenticated user id from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return userID, ok
}

// ClientInfo holds the request metadata gathered for logging.
type ClientInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
	UserID    string
}

// GetClientInfoFromContext extracts all client information from context
func GetClientInfoFromContext(ctx context.Context) ClientInfo {
	info := ClientInfo{
		RequestID: GetRequestIDFromContext(ctx),
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
	}
	if id, ok := GetUserIDFromContext(ctx); ok {
		info.UserID = id.String()
	}
	return info
}
