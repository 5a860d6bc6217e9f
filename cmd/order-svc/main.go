package main

import (
	orderapp "github.com/corray333/order-lifecycle/internal/app/order"
	"github.com/corray333/order-lifecycle/internal/config"
)

func main() {
	config.MustInit("order-svc")
	orderapp.MustNewApp().Run()
}
