package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xtaci/fedhub/acceptor"
	"github.com/xtaci/fedhub/httpapi"
	"github.com/xtaci/fedhub/operator"
	"github.com/xtaci/fedhub/registry"
	"github.com/xtaci/fedhub/snapshot"
)

const (
	tcpAddr  = "0.0.0.0:3030"
	httpAddr = "0.0.0.0:3031"
	htmlDir  = "./html"
)

func main() {
	reg := registry.New()

	if _, err := os.Stat(snapshot.DefaultPath); err == nil {
		if err := snapshot.LoadFromFile(snapshot.DefaultPath, reg); err != nil {
			log.Printf("%+v\n", err)
		} else {
			log.Println("loaded", snapshot.DefaultPath)
		}
	}

	acc, err := acceptor.Listen(tcpAddr, reg, false)
	checkError(err)
	go acc.Serve()
	log.Println("listening on", tcpAddr)

	httpSrv := httpapi.New(httpAddr, reg, htmlDir)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil {
			log.Printf("%+v\n", err)
		}
	}()
	log.Println("listening on", httpAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	op := operator.New(reg, snapshot.DefaultPath, os.Stdin, os.Stdout)
	stopped := make(chan bool, 1)
	go func() { stopped <- op.Run() }()

	select {
	case <-sig:
		log.Println("signal received, shutting down")
	case <-stopped:
		log.Println("stop command received, shutting down")
	}

	shutdown(acc, httpSrv, reg)
}

func shutdown(acc *acceptor.Acceptor, httpSrv *httpapi.Server, reg *registry.Registry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("%+v\n", err)
	}
	acc.Close()

	if err := snapshot.SaveToFile(snapshot.DefaultPath, reg); err != nil {
		log.Printf("%+v\n", err)
	} else {
		log.Println("saved", snapshot.DefaultPath)
	}
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
