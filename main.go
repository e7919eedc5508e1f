package main

import "complaintdesk/internal/app"

// @title           ComplaintDesk API
// @version         1.0
// @description     Сервис приёма и обработки жалоб: регистрация, вход, восстановление пароля по OTP, подача и администрирование жалоб.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Введите токен в формате: Bearer {token}

// @BasePath /
func main() {
	app.Run()
}
