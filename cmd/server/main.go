package main

import (
	"fmt"
	"os"

	"github.com/yungbote/obligo-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(a.Cfg.HTTPAddr); err != nil {
		fmt.Printf("server exited: %v\n", err)
		os.Exit(1)
	}
}
