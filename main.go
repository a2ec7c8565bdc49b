package main

import (
	"embed"
	stdlog "log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"gopkg.in/natefinch/lumberjack.v2"

	"tabswitch/internal/app"
	"tabswitch/internal/infrastructure/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var icon []byte

func main() {
	application, err := app.NewApp()
	if err != nil {
		stdlog.Fatal(err)
	}

	if cfg := application.Config(); cfg.LogFile != "" {
		stdlog.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB, // megabytes
			MaxBackups: cfg.LogMaxFiles,
			MaxAge:     14, // days
		})
	}

	err = wails.Run(&options.App{
		Title:            "TabSwitch",
		Width:            420,
		Height:           560,
		MinWidth:         360,
		MinHeight:        400,
		DisableResize:    false,
		Fullscreen:       false,
		StartHidden:      false,
		AlwaysOnTop:      true,
		BackgroundColour: &options.RGBA{R: 24, G: 24, B: 28, A: 255},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Menu:             nil,
		Logger:           logging.NewWailsLoggerAdapter(application.GetLogger()),
		LogLevel:         logger.INFO,
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
			WebviewUserDataPath:  "",
			ZoomFactor:           1.0,
		},
		Mac: &mac.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "TabSwitch",
				Message: "Browser tab discovery and switching",
				Icon:    icon,
			},
		},
	})

	if err != nil {
		stdlog.Fatal(err)
	}
}
