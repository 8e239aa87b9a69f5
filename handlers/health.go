package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mariiahub/database"
	"mariiahub/utils"
)

// Health reports whether the process and its stores are reachable.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	mongoOK := database.MongoClient != nil && database.MongoClient.Ping(ctx, nil) == nil
	redisOK := utils.GetDraftCacheClient().Ping(ctx).Err() == nil

	status := http.StatusOK
	if !mongoOK || !redisOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"mongo": mongoOK,
		"redis": redisOK,
	})
}
