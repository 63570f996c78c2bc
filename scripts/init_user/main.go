package main

import (
	"flag"
	"fmt"
	"log"

	gormlogger "gorm.io/gorm/logger"

	"github.com/panlogistics/blog/internal/config"
	"github.com/panlogistics/blog/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	username := flag.String("username", firstNonEmpty(cfg.SuperRootUserName, "admin"), "管理员用户名")
	password := flag.String("password", cfg.SuperRootPassword, "管理员密码")
	flag.Parse()

	if *password == "" {
		log.Fatal("请通过 -password 或 SUPER_ROOT_PASSWORD 提供密码")
	}

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabaseURL, gormlogger.Warn)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	var count int64
	gdb.Model(&db.User{}).Where("username = ?", *username).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，无需初始化")
		return
	}

	if err := db.EnsureUser(gdb, *username, *password); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("管理员用户创建成功")
	fmt.Println("用户名:", *username)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
