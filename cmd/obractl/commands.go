package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"obra-admin/backend/internal/repository"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/database"
	"obra-admin/backend/pkg/jwt"
	"obra-admin/backend/pkg/redis"
)

// ── migrate ──

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(*cobra.Command, []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return database.RunMigrations(sqlDB, a.logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(*cobra.Command, []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return database.RollbackMigrations(sqlDB, steps, a.logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚步数")

	cmd.AddCommand(up, down)
	return cmd
}

// ── weeks ──

func newWeeksCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "工资周批量维护",
	}
	cmd.PersistentFlags().IntVar(&year, "year", time.Now().Year(), "年份（2000..2100）")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "生成指定年份的工资周",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPayroll(func(svc service.PayrollService) error {
				result, err := svc.GenerateWeeks(cmd.Context(), year, cliUserID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d 年已生成 %d 个工资周\n", result.Year, result.Count)
				return nil
			})
		},
	}

	preview := &cobra.Command{
		Use:   "preview",
		Short: "预览指定年份的工资周区间（不落库）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year < 2000 || year > 2100 {
				return fmt.Errorf("年份 %d 超出范围 2000..2100", year)
			}
			for _, r := range service.GenerateWeekRanges(year) {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s ~ %s\n",
					r.WeekNumber, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
			}
			return nil
		},
	}

	var confirm bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "删除指定年份的全部工资周及其发放记录",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("该操作不可恢复，请追加 --yes 确认")
			}
			return a.withPayroll(func(svc service.PayrollService) error {
				result, err := svc.PurgeYear(cmd.Context(), year, cliUserID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d 年已删除 %d 个工资周、%d 条工资支出\n",
					result.Year, result.DeletedWeeks, result.DeletedExpenses)
				return nil
			})
		},
	}
	purge.Flags().BoolVar(&confirm, "yes", false, "确认删除")

	cmd.AddCommand(generate, preview, purge)
	return cmd
}

// withPayroll 构建工资服务并执行 fn；Redis 可用时用于看板缓存失效
func (a *app) withPayroll(fn func(service.PayrollService) error) error {
	db, closeDB, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	var cache service.Cache
	if a.cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&a.cfg.Redis, a.logger)
		if err != nil {
			a.logger.Warn("Redis 不可用，跳过看板缓存失效", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = rdb
		}
	}

	svc := service.NewService(a.cfg, repository.NewRepository(db), service.Deps{Cache: cache}, a.logger)
	return fn(svc.Payroll)
}

// ── token ──

func newTokenCmd(a *app) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发访问令牌",
		PreRunE: func(*cobra.Command, []string) error {
			if role != jwt.RoleAdmin && role != jwt.RoleViewer {
				return fmt.Errorf("role 只能为 %s 或 %s", jwt.RoleAdmin, jwt.RoleViewer)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := jwt.NewManager(&a.cfg.Auth).GenerateAccessToken(userID, role, ttl)
			if err != nil {
				return fmt.Errorf("签发令牌失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "用户标识（写入 sub）")
	cmd.Flags().StringVar(&role, "role", jwt.RoleViewer, "角色：admin | viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期，0 使用配置的默认值")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
