package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"searchagent/internal/infra/config"
)

// runEncrypt prints an "enc:" value for config.yaml. The passphrase comes
// from SEARCHAGENT_CONFIG_KEY; the secret from args or the first line of in.
func runEncrypt(args []string, in io.Reader, out io.Writer) error {
	passphrase := os.Getenv(config.EnvPrefix + "CONFIG_KEY")
	if passphrase == "" {
		return fmt.Errorf("%sCONFIG_KEY must be set", config.EnvPrefix)
	}

	var secret string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read secret: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	case 1:
		secret = args[0]
	default:
		return errors.New("encrypt takes at most one value")
	}
	if secret == "" {
		return errors.New("empty secret")
	}

	enc, err := config.EncryptValue(secret, passphrase)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, enc)
	return err
}
