/*
- @Author: aztec
- @Date: 2024-01-18 10:20:19
- @Description: 因子库的数据定义
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"os"

	jsoniter "github.com/json-iterator/go"
)

var logPrefix = "factorlib"

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type InfluxConfig struct {
	Addr     string `json:"addr"`
	UserName string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

type LaunchConfig struct {
	// 因子库名称
	Name string `json:"name"`

	// redis用来存储因子metadata（公式标识、回看量、覆盖范围等）
	RedisCfg RedisConfig `json:"redis"`

	// influx中以时间、品种名、因子名为key，存储所有因子的value
	InfluxCfg InfluxConfig `json:"influx"`
}

func LoadLaunchConfig(path string) (*LaunchConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lc := &LaunchConfig{}
	if err := jsoniter.Unmarshal(b, lc); err != nil {
		return nil, err
	}
	return lc, nil
}
