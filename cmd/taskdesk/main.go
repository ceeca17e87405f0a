// Command taskdesk はチーム単位のタスク管理APIサーバーを起動する。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/taskdesk/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "taskdesk: %v\n", err)
		os.Exit(1)
	}
}
