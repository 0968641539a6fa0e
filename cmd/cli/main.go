package main

import (
	"fmt"
	"os"

	"github.com/crucial707/makerspace-access/cmd/cli/auth"
	"github.com/crucial707/makerspace-access/cmd/cli/cards"
	"github.com/crucial707/makerspace-access/cmd/cli/root"
	"github.com/crucial707/makerspace-access/cmd/cli/scan"
	"github.com/crucial707/makerspace-access/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	users.InitUsers(rootCmd)
	cards.InitCards(rootCmd)
	scan.InitScan(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
