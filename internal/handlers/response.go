package handlers

import "github.com/gin-gonic/gin"

func errorBody(err error) gin.H {
	return gin.H{"error": err.Error()}
}
