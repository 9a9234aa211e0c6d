package app

import (
	"time"

	"github.com/fatflowers/memberpay/internal/app/api/server"
	"github.com/fatflowers/memberpay/internal/app/service/membership"
	notificationhandler "github.com/fatflowers/memberpay/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/memberpay/internal/app/service/notification_log"
	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/app/service/plancatalog"
	"github.com/fatflowers/memberpay/internal/app/service/statistics"
	"github.com/fatflowers/memberpay/internal/platform/db"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/internal/platform/redis"
	"github.com/fatflowers/memberpay/pkg/config"
	"github.com/fatflowers/memberpay/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	redis.Module,
	razorpay.Module,
	server.Module,
	plancatalog.Module,
	membership.Module,
	statistics.Module,
	notificationlog.Module,
	notificationhandler.Module,
	order.Module,
)
