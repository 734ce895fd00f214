// Package api exposes the glove manager over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ikalevatykh/vmg30/internal/glove"
	"github.com/ikalevatykh/vmg30/internal/manager"
)

type controller struct {
	manager manager.Manager
}

type statusResponse struct {
	Running         bool   `json:"running"`
	Faulted         bool   `json:"faulted"`
	ManuallyStopped bool   `json:"manually_stopped"`
	Err             string `json:"err,omitempty"`
}

func (ctl *controller) status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Running:         ctl.manager.Running(),
		Faulted:         ctl.manager.Faulted(),
		ManuallyStopped: ctl.manager.ManuallyStopped(),
	})
}

type setStatusRequest struct {
	Running bool `json:"running"`
}

func (ctl *controller) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	log.Infof("SetStatus: %v", req.Running)

	var err error
	if req.Running {
		err = ctl.manager.Start()
	} else {
		err = ctl.manager.Stop()
	}
	resp := statusResponse{
		Running:         ctl.manager.Running(),
		Faulted:         ctl.manager.Faulted(),
		ManuallyStopped: ctl.manager.ManuallyStopped(),
	}
	if err != nil {
		resp.Err = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

type infoResponse struct {
	DeviceID uint16 `json:"device_id"`
	Label    string `json:"label"`
	Firmware string `json:"firmware"`
	HasWifi  bool   `json:"has_wifi_module"`
	Address  string `json:"address"`
	Netmask  string `json:"netmask"`
	Gateway  string `json:"gateway"`
	DHCP     bool   `json:"dhcp"`
}

func (ctl *controller) info(c *gin.Context) {
	id, err := ctl.manager.Identity()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": err.Error()})
		return
	}
	resp := infoResponse{
		DeviceID: id.DeviceID,
		Label:    id.Label,
		Firmware: id.Firmware,
		HasWifi:  id.HasWifiModule(),
		DHCP:     id.DHCP,
	}
	if id.Address != nil {
		resp.Address = id.Address.String()
		resp.Netmask = id.Netmask.String()
		resp.Gateway = id.Gateway.String()
	}
	c.JSON(http.StatusOK, resp)
}

type samplesResponse struct {
	Cursor  int64           `json:"cursor"`
	Samples []*glove.Sample `json:"samples"`
}

func (ctl *controller) samples(c *gin.Context) {
	cursor := int64(-1)
	if arg := c.Query("cursor"); arg != "" {
		parsed, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": "invalid cursor"})
			return
		}
		cursor = parsed
	}

	cursor, samples, err := ctl.manager.Read(cursor)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, samplesResponse{Cursor: cursor, Samples: samples})
}

type vibroRequest struct {
	Levels [5]float64 `json:"levels"`
}

func (ctl *controller) vibro(c *gin.Context) {
	var req vibroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := ctl.manager.SetVibroFeedback(req.Levels); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// NewRouter builds the HTTP API router around a glove manager.
func NewRouter(m manager.Manager) *gin.Engine {
	ctl := &controller{manager: m}

	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/v1")
	v1.GET("/status", ctl.status)
	v1.POST("/status", ctl.setStatus)
	v1.GET("/info", ctl.info)
	v1.GET("/samples", ctl.samples)
	v1.POST("/vibro", ctl.vibro)
	return r
}
