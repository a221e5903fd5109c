package controller

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// NetworkController reports addressing information and runs connectivity
// checks.
type NetworkController struct {
	// publicIPEndpoint is queried for the external address; failures are
	// tolerated (empty public IP).
	publicIPEndpoint string
	httpClient       *http.Client
	run              func(name string, args ...string) (string, error)
}

func NewNetworkController() *NetworkController {
	return &NetworkController{
		publicIPEndpoint: "https://api.ipify.org",
		httpClient:       &http.Client{Timeout: 5 * time.Second},
		run: func(name string, args ...string) (string, error) {
			out, err := exec.Command(name, args...).CombinedOutput()
			return string(out), err
		},
	}
}

func (c *NetworkController) Name() string { return "network" }

func (c *NetworkController) Actions() []string {
	return []string{"get_ip_info", "get_network_info", "ping"}
}

func (c *NetworkController) Handle(action string, params map[string]any) Result {
	switch action {
	case "get_ip_info", "get_network_info":
		return c.networkInfo()
	case "ping":
		return c.ping(params)
	}
	return failure("Unsupported action: %s", action)
}

func (c *NetworkController) networkInfo() Result {
	hostname, _ := os.Hostname()

	var ips []string
	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
				continue
			}
			ips = append(ips, ipNet.IP.String())
		}
	}
	localIP := ""
	if len(ips) > 0 {
		localIP = ips[0]
	}

	publicIP := c.publicIP()

	return successData(map[string]any{
		"hostname":           hostname,
		"local_ip":           localIP,
		"all_ips":            ips,
		"public_ip":          publicIP,
		"internet_connected": publicIP != "",
	}, "Network info retrieved")
}

func (c *NetworkController) publicIP() string {
	resp, err := c.httpClient.Get(c.publicIPEndpoint)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return ""
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return ""
	}
	return ip
}

func (c *NetworkController) ping(params map[string]any) Result {
	host := stringParam(params, "host")
	if host == "" {
		host = "8.8.8.8"
	}
	count := 4
	if n, ok := intParam(params, "count"); ok && n > 0 {
		count = clamp(n, 1, 10)
	}

	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}
	out, err := c.run("ping", countFlag, strconv.Itoa(count), host)
	if err != nil {
		return failure("Ping to %s failed: %v", host, err)
	}
	return successData(map[string]any{
		"host":   host,
		"count":  count,
		"output": strings.TrimSpace(out),
	}, fmt.Sprintf("Ping to %s completed", host))
}
