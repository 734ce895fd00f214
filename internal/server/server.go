package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/controller/api"
	managerImpl "github.com/ikalevatykh/vmg30/internal/manager/vmg30"
	"github.com/ikalevatykh/vmg30/pkg/version"
)

type mainApp struct {
	name string
	cmd  *cobra.Command
	args []string
	opt  *config.VMGServerOpt
}

func (a *mainApp) ProbeGlove() error {
	m := managerImpl.NewManager(a.opt)
	log.Infoln("Probing glove devices...")
	res, err := m.ProbeDev()
	if err != nil {
		log.Errorln(err)
		return err
	}
	log.Infof("Found %d responding gloves: \n", len(res))
	for _, v := range res {
		fmt.Printf("- %s\n", strings.TrimSpace(v))
	}
	return nil
}

func (a *mainApp) GetOpt() *config.VMGServerOpt { return a.opt }

func (a *mainApp) SetOpt(opt *config.VMGServerOpt) { a.opt = opt }

var app MainApp = nil

func (a *mainApp) Run() {
	var once sync.Once
	once.Do(func() {
		app = a
	})

	log.Infoln("version:", version.GitVersion)
	log.Infoln("api.port:", a.opt.API.Port)
	log.Infoln("api.interface:", a.opt.API.Interface)
	log.Infoln("glove.port:", a.opt.Glove.Port)
	log.Infoln("glove.raw:", a.opt.Glove.Raw)
	log.Infoln("debug:", a.opt.Debug)

	// start manager
	m := managerImpl.NewManager(a.opt)
	go managerImpl.Daemon(m)

	// install and start api server
	router := api.NewRouter(m)
	addr := a.opt.API.Interface + ":" + strconv.Itoa(a.opt.API.Port)
	log.Info("start API listen on ", addr)
	if err := router.Run(addr); err != nil {
		log.Errorln("failed to serve...", err)
		return
	}
}

func (a *mainApp) PrepareRun() MainApp {
	desc := config.NewVMGServerDesc()
	err := desc.Parse(a.cmd)
	if err != nil {
		log.Errorln(err)
		os.Exit(1)
		return nil
	}
	desc.PostParse()
	a.opt = &desc.Opt
	a.name = config.DefaultAppName

	return a
}

type MainApp interface {
	Run()
	PrepareRun() MainApp
	GetOpt() *config.VMGServerOpt
	SetOpt(*config.VMGServerOpt)
	ProbeGlove() error
}

func NewMainApp(cmd *cobra.Command, args []string) MainApp {
	return &mainApp{
		cmd:  cmd,
		args: args,
	}
}
