package main

import (
	notificationapp "github.com/corray333/order-lifecycle/internal/app/notification"
	"github.com/corray333/order-lifecycle/internal/config"
)

func main() {
	config.MustInit("notification-consumer")
	notificationapp.MustNewApp().Run()
}
