package main

import (
	"log"

	"github.com/lintang-b-s/drive-search/pkg/di"
)

//	@title			Drive Search API
//	@version		1.0
//	@description	keyword search and spelling correction over the google drive documents of the signed in user.
//	@host			localhost:6060
//	@BasePath		/
func main() {
	server, cleanup, err := di.InitializeSearcherService()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if err := server.Wait(); err != nil {
		server.Log.Error(err.Error())
	}
}
