package main

import "github.com/nikogura/plclient/cmd"

func main() {
	cmd.Execute()
}
