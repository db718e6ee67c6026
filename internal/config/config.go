package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Frontend Frontend `koanf:"frontend"`
	Admin    Admin    `koanf:"admin"`
	Studio   Studio   `koanf:"studio"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Admin struct {
	Password string `koanf:"password"`
}

// Studio describes the bookable calendar: the daily operating window, the grid
// granularity, and which availability policy governs private-lesson cells.
type Studio struct {
	Timezone    string `koanf:"timezone"`
	OpenTime    string `koanf:"opentime"`
	CloseTime   string `koanf:"closetime"`
	SlotMinutes int    `koanf:"slotminutes"`
	// Policy is "open" (every free cell is bookable) or "closed" (only cells
	// explicitly opened by the admin are bookable).
	Policy string `koanf:"policy"`
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

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Frontend: Frontend{
			Enabled: true,
		},
		Studio: Studio{
			Timezone:    "Asia/Tokyo",
			OpenTime:    "10:00",
			CloseTime:   "16:30",
			SlotMinutes: 10,
			Policy:      "open",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "lessonbook",
			Pass:   "",
			Name:   "lessonbook",
			Schema: "lessonbook",
		},
	}, "koanf"), nil)
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
		Prefix: "LESSONBOOK_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "LESSONBOOK_")), "_", ".")
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
