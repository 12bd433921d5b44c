package handler

// Every endpoint answers with the same envelope: {success, data?, error?,
// details?}. These helpers keep the handlers from assembling it by hand.

import "github.com/labstack/echo/v4"

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondErr(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

func respondDetails(c echo.Context, status int, msg string, details interface{}) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg, "details": details})
}
