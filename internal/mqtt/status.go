package mqtt

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

type bridgeStatus struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	IPAddress string `json:"ip_address,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func statusPayload(status, clientID string) ([]byte, error) {
	s := bridgeStatus{
		Status:    status,
		ClientID:  clientID,
		Timestamp: time.Now().Unix(),
	}
	if status == statusOnline {
		s.IPAddress = getIPAddress()
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s status: %w", status, err)
	}
	return b, nil
}

// PublishStartInfo publishes a retained message indicating the bridge is running.
func PublishStartInfo(c *Client, topic, clientID string) {
	payload, err := statusPayload(statusOnline, clientID)
	if err != nil {
		c.log.Error("Error building start info", zap.Error(err))
		return
	}
	if err := c.PublishRetained(topic, 1, payload); err != nil {
		c.log.Error("Failed to publish start info", zap.String("topic", topic), zap.Error(err))
		return
	}
	c.log.Info("Published retained start info", zap.String("topic", topic))
}

// getIPAddress tries to find the primary local IPv4 address.
func getIPAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "unknown"
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return "unknown"
}
