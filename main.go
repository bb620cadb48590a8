package main

import "github.com/financeops/finance-management/cmd"

func main() {
	cmd.Execute()
}
