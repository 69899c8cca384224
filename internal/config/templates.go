package config

import (
	"fmt"
	"os"
)

// Template returns a commented boardd config holding the defaults.
func Template() string {
	return boardTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(boardTemplate), 0o600)
}

const boardTemplate = `# boardd configuration

[serial]
device = "/dev/ttyACM0"
baud = 115200
read_timeout = "50ms"
# raw = true writes the bare payload without HDLC framing
raw = false

[board]
width = 21
height = 21
mirror_rows = false
mirror_columns = false
swap_axes = false
brush = 255

[board.figure.frame]
type = "rect"
width = 21
height = 21
thickness = 1
filled = false
brightness = 128
[board.figure.frame.center]
x = 0
y = 0

[board.figure.core]
type = "rect"
width = 5
height = 5
thickness = 1
filled = true
[board.figure.core.center]
x = 8
y = 8

[display]
cell_width = 20.0
cell_height = 20.0

[link]
frame_rate = 30.0
burst = 1
max_payload = 4096
push_on_change = true
poll_interval = "10ms"
reconnect_initial = "250ms"
reconnect_max = "5s"
reconnect_multiplier = 2.0
reconnect_attempts = 5

[http]
addr = ":9300"
cors_origins = ["http://localhost:3000"]
# token = "change-me" requires a bearer token on board mutations
# cert_file and key_file together enable TLS
# cert_file = "/etc/boardd/tls.crt"
# key_file = "/etc/boardd/tls.key"

[ifaces]
pattern = "/dev/tty*"
prefer = ["ttyACM", "ttyUSB"]
can = true
interval = "500ms"
`
