// Package autoload initialises the global logger from LOG_* variables on import.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/tanpawarit/trip-dining/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil || conf.Validate() != nil {
		logx.Init()
		return
	}
	logx.Init(conf)
}
