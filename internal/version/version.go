package version

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the application version. Can be overridden at build time via:
//
//	go build -ldflags "-X winsbygroup.com/keyserver/internal/version.Version=1.2.3"
var Version = "1.0"

// Banner prints identifying information about the server.
func Banner() string {
	y := strconv.Itoa(time.Now().Year())
	copyright := "Copyright 2025-" + y + " Winsby Group LLC. All rights reserved."

	return fmt.Sprintf("%s\nKeyserver (v%s)\n%s\n", product(), Version, copyright)
}

func product() string {
	// http://patorjk.com/software/taag/#p=display&f=Standard&t=Keyserver
	const s = `
  _  __                                          
 | |/ /___ _   _ ___  ___ _ ____   _____ _ __ 
 | ' // _ \ | | / __|/ _ \ '__\ \ / / _ \ '__|
 | . \  __/ |_| \__ \  __/ |   \ V /  __/ |   
 |_|\_\___|\__, |___/\___|_|    \_/ \___|_|   
           |___/
`
	return s
}
