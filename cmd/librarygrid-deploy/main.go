package main

import (
	"os"

	"github.com/librarygrid/librarygrid/internal/app"
)

func main() {
	env := app.DefaultEnv()
	os.Exit(app.Main(app.NewDeployCmd(env), env))
}
