package main

import "github.com/quickmark/qr-management/cmd"

func main() {
	cmd.Execute()
}
