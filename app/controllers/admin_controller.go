package controllers

import (
	"net/http"

	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func (c *AdminController) Login(cx *ctx.Context) {
	var in credentials
	if !cx.DecodeJSON(&in) {
		return
	}

	token, err := c.admin.Login(cx.Context(), in.Email, in.Password)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, map[string]any{"success": true, "token": token})
}
