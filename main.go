package main

import "github.com/shaharia-lab/weatherbrief/cmd"

func main() {
	cmd.Execute()
}
