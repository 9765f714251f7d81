package api

import "github.com/rolodexapp/rolodex-server/internal/service"

// Services groups the application services the API layer depends on.
type Services struct {
	Contact   *service.ContactService
	Tag       *service.TagService
	Activity  *service.ActivityService
	Transfer  *service.TransferService
	Dashboard *service.DashboardService
}
