package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Host     string   `koanf:"host"`
	Timezone string   `koanf:"timezone"`
	Frontend Frontend `koanf:"frontend"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
	Calendar Calendar `koanf:"calendar"`
	Agenda   Agenda   `koanf:"agenda"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	CalendarId   string `koanf:"calendarid"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Calendar struct {
	DefaultDurationMinutes int `koanf:"defaultdurationminutes"`
	NewDurationMinutes     int `koanf:"newdurationminutes"`
	MonthPreviewCap        int `koanf:"monthpreviewcap"`
}

type Agenda struct {
	Refresh string `koanf:"refresh"`
}

// Location resolves the configured household timezone, falling back to the
// process local zone.
func (a Application) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, using local time: %v", a.Timezone, err)
		return time.Local
	}
	return loc
}

func Defaults() Application {
	return Application{
		Listen: ":8181",
		Host:   "http://localhost:3000",
		Frontend: Frontend{
			Enabled: true,
			Dir:     "frontend",
		},
		Google: Google{
			CalendarId: "primary",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "homedash",
			Pass:   "",
			Name:   "homedash",
			Schema: "homedash",
		},
		Calendar: Calendar{
			DefaultDurationMinutes: 60,
			NewDurationMinutes:     30,
			MonthPreviewCap:        3,
		},
		Agenda: Agenda{
			Refresh: "*/15 * * * *",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "HOMEDASH_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "HOMEDASH_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
