package main

import "github.com/imrishuroy/go-rental-billing/cmd/billingctl/commands"

func main() {
	commands.Execute()
}
