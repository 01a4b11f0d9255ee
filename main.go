package main

import (
	"log"
	"tgbot_backend/internal/app"
	"tgbot_backend/internal/config"
	"tgbot_backend/pkg/configwatcher"
	"tgbot_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 配置文件热更新，自动删除等开关不用重启即可生效
	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
