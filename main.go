package main

import "github.com/KaramelBytes/dsexplorer/cmd"

func main() {
	cmd.Execute()
}
