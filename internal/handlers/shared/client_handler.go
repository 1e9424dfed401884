package handlers

import (
	"github.com/gin-gonic/gin"

	"hunarscan/internal/middleware"
	"hunarscan/internal/services"
	"hunarscan/internal/utils"
	"hunarscan/internal/validators"
)

type ClientHandler struct {
	clientService services.ClientService
}

func NewClientHandler(clientService services.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var request validators.ClientCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), middleware.GetIdentity(c), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Client profile created", gin.H{"clientId": client.ID})
}
