package server

import (
	"fmt"
	"net"
	"time"

	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/nss"
)

const dialTimeout = 5 * time.Second

// Client performs one request/response round trip per call against a
// running lookup server.
type Client struct {
	socket string
}

func NewClient(socket string) *Client {
	return &Client{socket: socket}
}

// LookupName resolves name within family (FamilyUnspec tries IPv4 then
// IPv6, server side).
func (c *Client) LookupName(name string, family hostent.Family) (hostent.Host, nss.Status, error) {
	resp, err := c.do(Request{Op: OpLookupName, Family: family, Payload: []byte(name)})
	if err != nil {
		return hostent.Host{}, nss.StatusUnavail, err
	}
	return firstHost(resp), resp.Status, nil
}

// LookupAddr resolves ip, inferring the family from its form.
func (c *Client) LookupAddr(ip net.IP) (hostent.Host, nss.Status, error) {
	family := hostent.FamilyV6
	raw := []byte(ip.To16())
	if v4 := ip.To4(); v4 != nil {
		family = hostent.FamilyV4
		raw = []byte(v4)
	}

	resp, err := c.do(Request{Op: OpLookupAddr, Family: family, Payload: raw})
	if err != nil {
		return hostent.Host{}, nss.StatusUnavail, err
	}
	return firstHost(resp), resp.Status, nil
}

// Enumerate fetches the server's full record set.
func (c *Client) Enumerate() ([]hostent.Host, nss.Status, error) {
	resp, err := c.do(Request{Op: OpEnumerate})
	if err != nil {
		return nil, nss.StatusUnavail, err
	}
	return resp.Hosts, resp.Status, nil
}

func (c *Client) do(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socket, dialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("dialing %s: %w", c.socket, err)
	}
	defer conn.Close()

	if _, err := conn.Write(EncodeRequest(req)); err != nil {
		return Response{}, fmt.Errorf("writing request: %w", err)
	}
	resp, err := ReadResponse(conn)
	if err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}
	return resp, nil
}

func firstHost(resp Response) hostent.Host {
	if len(resp.Hosts) == 0 {
		return hostent.Host{}
	}
	return resp.Hosts[0]
}
