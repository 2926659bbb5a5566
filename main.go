package main

import (
	"fmt"

	"postframe/queue-api/api"
	"postframe/queue-api/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter(cfg)
	if err != nil {
		panic(err)
	}

	zap.L().Info("Server starting", zap.Int("port", cfg.Host.Port))

	err = a.Router.Run(fmt.Sprintf(":%d", cfg.Host.Port))
	if err != nil {
		panic(err)
	}
}
