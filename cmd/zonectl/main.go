package main

import (
	"os"
	"strings"

	"zone-api/internal/config"
	"zone-api/internal/logger"

	"github.com/joho/godotenv"
)

// 文档注释：区域数据集运维 CLI
// 背景：发布前离线校验数据集、导入/导出 PostgreSQL 版本表、回滚以及按文件试算解析结果；服务端只读取，不编辑区域。
// 约束：--env 指定的文件优先于默认 .env；日志输出到标准错误，命令结果输出到标准输出。
func main() {
	var envFile string
	var args []string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--env" && i+1 < len(os.Args) {
			envFile = os.Args[i+1]
			i++
			continue
		}
		args = append(args, os.Args[i])
	}
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	cfg := config.Load()
	level := cfg.LogLevel
	if strings.EqualFold(level, "info") {
		level = "warn"
	}
	logger.Setup(level, cfg.LogFormat)
	os.Exit(run(args, cfg, os.Stdout))
}
