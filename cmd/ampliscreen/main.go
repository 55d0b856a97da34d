// cmd/ampliscreen/main.go
package main

import (
	"ampliscreen/internal/app"
	"ampliscreen/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
