package server

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
)

// Client 阻塞式客户端, 同一时间只有一个请求在途
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
	seq  uint32
}

// Dial addr 可以带 tcp:// 前缀, 与服务端配置一致
func Dial(addr string, timeout time.Duration) (*Client, error) {
	network := "tcp"
	if i := strings.Index(addr, "://"); i >= 0 {
		network, addr = addr[:i], addr[i+3:]
	}
	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Now 服务端当前时间
func (c *Client) Now() (tick.Tick, error) {
	rep, err := c.call(KindNow, 0)
	if err != nil {
		return 0, err
	}
	return rep.Now, nil
}

// Wait 等待服务端时间过去 d 个tick
func (c *Client) Wait(d tick.Tick) (*Reply, error) {
	return c.call(KindWaitRelative, d)
}

// WaitUntil 等到服务端时间到达 at
func (c *Client) WaitUntil(at tick.Tick) (*Reply, error) {
	return c.call(KindWaitAbsolute, at)
}

func (c *Client) call(kind Kind, ticks tick.Tick) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	req := &Request{Seq: c.seq, Kind: kind, Ticks: ticks}
	if _, err := c.conn.Write(req.AppendFrame(nil)); err != nil {
		return nil, err
	}
	head := make([]byte, msgLenSize)
	if _, err := io.ReadFull(c.r, head); err != nil {
		return nil, err
	}
	total, err := frameLen(head, 0)
	if err != nil {
		return nil, err
	}
	body := make([]byte, total-msgLenSize)
	if _, err = io.ReadFull(c.r, body); err != nil {
		return nil, err
	}
	rep := new(Reply)
	if err = rep.Unmarshal(body); err != nil {
		return nil, err
	}
	if rep.Seq != req.Seq {
		return nil, errs.BadFrame.Printf("reply seq %d, want %d", rep.Seq, req.Seq)
	}
	return rep, nil
}
