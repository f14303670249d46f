package main

import "github.com/ValentinKolb/gedis/cmd"

func main() {
	cmd.Execute()
}
