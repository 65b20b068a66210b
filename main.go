package main

import "github.com/KaramelBytes/wbclimate-cli/cmd"

func main() {
	cmd.Execute()
}
