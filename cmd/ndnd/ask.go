package main

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/spf13/cobra"

	"github.com/acardace/ndnd/ndn"
	"github.com/acardace/ndnd/ndn/nonce"
)

// newAskCommand builds the one-shot Interest client: it issues a single
// Interest and prints whatever Data comes back (or times out).
func newAskCommand() *cobra.Command {
	var target string
	var port uint16
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask <name>",
		Short: "Send a single Interest and print the matching Data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := []byte(args[0])
			gen := nonce.NewGenerator()
			pkt := ndn.Interest{Nonce: gen.Next(), Name: name}

			body, err := ndn.EncodeInterest(pkt)
			if err != nil {
				return err
			}

			dest, err := netip.ParseAddr(target)
			if err != nil {
				return fmt.Errorf("invalid --to address %q: %w", target, err)
			}

			conn, err := net.ListenUDP("udp4", nil)
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.WriteToUDPAddrPort(body, netip.AddrPortFrom(dest, port)); err != nil {
				return fmt.Errorf("sending interest: %w", err)
			}

			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return err
			}
			buf := make([]byte, ndn.MaxDatagramSize)
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return fmt.Errorf("no reply within %s: %w", timeout, err)
			}

			data, err := ndn.DecodeData(buf[1:n])
			if err != nil {
				return fmt.Errorf("malformed reply: %w", err)
			}
			fmt.Printf("%s\n", data.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "255.255.255.255", "destination IPv4 address")
	cmd.Flags().Uint16Var(&port, "port", ndn.DefaultConfig().Port, "UDP port")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "how long to wait for a reply")

	return cmd
}
