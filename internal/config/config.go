package config

import (
	"time"

	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Stellar    StellarConfig    `mapstructure:"stellar"`
	Governance GovernanceConfig `mapstructure:"governance"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	Task       TaskConfig       `mapstructure:"task"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// StellarConfig Stellar/Soroban 链配置
type StellarConfig struct {
	CliPath         string        `mapstructure:"cli_path"`         // stellar CLI 可执行文件路径
	Network         string        `mapstructure:"network"`          // 网络 (testnet, mainnet)
	RpcUrl          string        `mapstructure:"rpc_url"`          // RPC节点URL
	SourceAccount   string        `mapstructure:"source_account"`   // 交易签名账户
	CoreContractId  string        `mapstructure:"core_contract"`    // 核心合约地址
	SbtContractId   string        `mapstructure:"sbt_contract"`     // SBT合约地址
	PlatformAccount string        `mapstructure:"platform_account"` // 平台手续费账户
	InvokeTimeout   time.Duration `mapstructure:"invoke_timeout"`   // 写调用超时
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`    // 只读调用超时
}

// GovernanceConfig 里程碑治理参数
type GovernanceConfig struct {
	PlatformFeeBps   int64         `mapstructure:"platform_fee_bps"`  // 平台手续费（基点，250 = 2.5%）
	MinVoters        int64         `mapstructure:"min_voters"`        // 审批所需最少投票人数
	VotingWindow     time.Duration `mapstructure:"voting_window"`     // 投票窗口时长
	MaxResubmissions int           `mapstructure:"max_resubmissions"` // 证明被拒后允许的最大重新提交次数
	OracleId         string        `mapstructure:"oracle_id"`         // 授权的验证预言机身份
	AdminAddress     string        `mapstructure:"admin_address"`     // 管理员地址
}

// OracleConfig AI验证配置
type OracleConfig struct {
	Mode     string        `mapstructure:"mode"`     // heuristic 或 http
	Endpoint string        `mapstructure:"endpoint"` // http 模式下的评估服务地址
	ApiKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Workers  int           `mapstructure:"workers"` // 异步评估协程池大小
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/greenforge")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "greenforge")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("stellar.cli_path", "stellar")
	viper.SetDefault("stellar.network", "testnet")
	viper.SetDefault("stellar.rpc_url", "https://soroban-testnet.stellar.org")
	viper.SetDefault("stellar.source_account", "admin")
	viper.SetDefault("stellar.invoke_timeout", "60s")
	viper.SetDefault("stellar.query_timeout", "30s")
	viper.SetDefault("governance.platform_fee_bps", 250)
	viper.SetDefault("governance.min_voters", 2)
	viper.SetDefault("governance.voting_window", "72h")
	viper.SetDefault("governance.max_resubmissions", 3)
	viper.SetDefault("governance.oracle_id", "oracle")
	viper.SetDefault("governance.admin_address", "admin")
	viper.SetDefault("oracle.mode", "heuristic")
	viper.SetDefault("oracle.timeout", "30s")
	viper.SetDefault("oracle.workers", 4)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
