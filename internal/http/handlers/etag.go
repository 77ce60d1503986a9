package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a content-derived ETag and
// short-circuits to 304 when If-None-Match already carries it. The catalog
// lists use this because the frontend polls them.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	etag := etagFor(payload)

	if etag == "" {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", etag)

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

// etagFor derives a strong validator from the marshaled payload. An empty
// string means the payload could not be marshaled; callers fall back to a
// plain response.
func etagFor(payload interface{}) string {
	b, err := json.Marshal(payload)

	if err != nil {
		return ""
	}

	return fmt.Sprintf("%q", fmt.Sprintf("%x", sha256.Sum256(b)))
}

func etagMatches(ifNoneMatch, current string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)

	if ifNoneMatch == "" {
		return false
	}

	if ifNoneMatch == "*" {
		return true
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)

		// weak validators (W/"...") compare by their opaque part
		candidate = strings.TrimPrefix(candidate, "W/")

		if strings.TrimSpace(candidate) == current {
			return true
		}
	}

	return false
}
