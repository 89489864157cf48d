package main

import "github.com/denysvitali/postlog-dashboard/cmd"

func main() {
	cmd.Execute()
}
