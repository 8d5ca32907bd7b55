// Package middleware provides gin middleware for the governance HTTP
// surface.
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/shared/constants"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/utils"
)

// ActorContext extracts the authenticated actor's identity and role from the
// gateway-injected headers. Authentication itself happens upstream; this
// service only trusts the perimeter headers.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader(constants.HeaderXActorID)
		if rawID == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
			c.Abort()
			return
		}

		actorID, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || actorID == 0 {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid actor identity"))
			c.Abort()
			return
		}

		// Unknown roles pass through; the capability resolver denies them by
		// default.
		role := capability.Role(c.GetHeader(constants.HeaderXActorRole))

		c.Set(constants.ContextKeyActorID, uint(actorID))
		c.Set(constants.ContextKeyActorRole, role)
		c.Next()
	}
}

// ActorFromContext reads the actor identity set by ActorContext.
func ActorFromContext(c *gin.Context) (uint, capability.Role, bool) {
	rawID, ok := c.Get(constants.ContextKeyActorID)
	if !ok {
		return 0, "", false
	}
	actorID, ok := rawID.(uint)
	if !ok {
		return 0, "", false
	}

	rawRole, ok := c.Get(constants.ContextKeyActorRole)
	if !ok {
		return 0, "", false
	}
	role, ok := rawRole.(capability.Role)
	if !ok {
		return 0, "", false
	}

	return actorID, role, true
}
