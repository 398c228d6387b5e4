package main

import "evaltrack/internal/app/server"

func main() {
	server.Run()
}
