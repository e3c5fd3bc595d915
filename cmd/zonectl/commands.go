package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"zone-api/internal/config"
	"zone-api/internal/migrate"
	"zone-api/internal/store"
	"zone-api/internal/utils"
	"zone-api/internal/zone"
)

var errUsage = errors.New("usage")

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  validate <file>")
	fmt.Fprintln(w, "  import <file>")
	fmt.Fprintln(w, "  export [file]")
	fmt.Fprintln(w, "  versions [limit]")
	fmt.Fprintln(w, "  rollback <version>")
	fmt.Fprintln(w, "  resolve <file> <lat> <lng>")
	fmt.Fprintln(w, "  address <file> <postal|-> [city|-] [province|-]")
	fmt.Fprintln(w, "  slots <file> <zone-id>")
	fmt.Fprintln(w, "  help")
}

// run：分派子命令并返回退出码（0 成功，1 失败，2 用法错误）
func run(args []string, cfg *config.Config, out io.Writer) int {
	if len(args) == 0 {
		printHelp(out)
		return 2
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	var err error
	switch strings.ToLower(args[0]) {
	case "help", "-h", "--help":
		printHelp(out)
		return 0
	case "validate":
		err = cmdValidate(args[1:], out)
	case "import":
		err = withPostgres(ctx, cfg, func(repo *store.PostgresRepository) error { return cmdImport(ctx, repo, args[1:], out) })
	case "export":
		err = withPostgres(ctx, cfg, func(repo *store.PostgresRepository) error { return cmdExport(ctx, repo, args[1:], out) })
	case "versions":
		err = withPostgres(ctx, cfg, func(repo *store.PostgresRepository) error { return cmdVersions(ctx, repo, args[1:], out) })
	case "rollback":
		err = withPostgres(ctx, cfg, func(repo *store.PostgresRepository) error { return cmdRollback(ctx, repo, args[1:], out) })
	case "resolve":
		err = cmdResolve(args[1:], out)
	case "address":
		err = cmdAddress(ctx, args[1:], out)
	case "slots":
		err = cmdSlots(args[1:], out)
	default:
		fmt.Fprintln(out, "unknown command:", args[0])
		printHelp(out)
		return 2
	}
	if errors.Is(err, errUsage) {
		printHelp(out)
		return 2
	}
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return 1
	}
	return 0
}

func withPostgres(ctx context.Context, cfg *config.Config, fn func(*store.PostgresRepository) error) error {
	db, err := utils.OpenPostgresFromConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		return err
	}
	return fn(store.NewPostgresRepository(db, "zonectl", cfg.HistoryKeep))
}

// loadFile：读取并加载数据集；规范化后为空视为错误
func loadFile(path string) ([]byte, *zone.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	ds, err := zone.LoadDataset(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if ds.Len() == 0 {
		return nil, nil, fmt.Errorf("%s: no valid zones", path)
	}
	return raw, ds, nil
}

func cmdValidate(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	raw, ds, err := loadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "shape: %s\n", zone.DetectShape(raw))
	fmt.Fprintf(out, "zones: %d\n", ds.Len())
	for _, z := range ds.Zones() {
		rings := 0
		if z.Polygon != nil {
			rings = len(z.Polygon.Rings)
		}
		fmt.Fprintf(out, "  %s | %s | rings=%d postal=%d cities=%d provinces=%d excluded=%d\n",
			z.ID, z.Name, rings, len(z.PostalCodes), len(z.Cities), len(z.Provinces), len(z.TimeSlotRestrictions.ExcludedSlots))
	}
	return nil
}

func cmdImport(ctx context.Context, repo *store.PostgresRepository, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	raw, ds, err := loadFile(args[0])
	if err != nil {
		return err
	}
	id, err := repo.SaveVersion(ctx, raw, "zonectl:"+filepath.Base(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported version %d (%d zones)\n", id, ds.Len())
	return nil
}

func cmdExport(ctx context.Context, repo *store.PostgresRepository, args []string, out io.Writer) error {
	raw, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		_, err = out.Write(raw)
		return err
	}
	if err := store.NewFileRepository(args[0]).Save(ctx, raw); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %d bytes to %s\n", len(raw), args[0])
	return nil
}

func cmdVersions(ctx context.Context, repo *store.PostgresRepository, args []string, out io.Writer) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return errUsage
		}
		limit = n
	}
	vs, err := repo.Versions(ctx, limit)
	if err != nil {
		return err
	}
	for _, v := range vs {
		fmt.Fprintf(out, "%d | %s | %d bytes | %s\n", v.ID, v.Source, v.Bytes, v.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func cmdRollback(ctx context.Context, repo *store.PostgresRepository, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errUsage
	}
	newID, err := repo.Rollback(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "version %d restored as %d\n", id, newID)
	return nil
}

func cmdResolve(args []string, out io.Writer) error {
	if len(args) < 3 {
		return errUsage
	}
	_, ds, err := loadFile(args[0])
	if err != nil {
		return err
	}
	lat, err1 := strconv.ParseFloat(args[1], 64)
	lng, err2 := strconv.ParseFloat(args[2], 64)
	if err1 != nil || err2 != nil {
		return errUsage
	}
	z, ok := zone.ResolveByCoordinates(lat, lng, ds)
	printResolution(out, zone.Resolution{Zone: z, Covered: ok, MatchedBy: zone.TierCoordinates})
	return nil
}

// address 不调用地理编码服务，仅试算邮编/城市/省三层
func cmdAddress(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}
	_, ds, err := loadFile(args[0])
	if err != nil {
		return err
	}
	in := zone.PartialAddress{PostalCode: dash(args, 1), City: dash(args, 2), Province: dash(args, 3)}
	printResolution(out, zone.ResolveByAddress(ctx, in, ds, nil))
	return nil
}

func cmdSlots(args []string, out io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}
	_, ds, err := loadFile(args[0])
	if err != nil {
		return err
	}
	if _, ok := ds.Zone(args[1]); !ok {
		fmt.Fprintf(out, "zone %q not found, showing full catalog\n", args[1])
	}
	fmt.Fprintln(out, "available:", strings.Join(zone.AvailableSlots(args[1], ds), ", "))
	fmt.Fprintln(out, "recommended:", strings.Join(zone.RecommendedSlots(args[1], ds), ", "))
	return nil
}

func printResolution(out io.Writer, r zone.Resolution) {
	if !r.Covered {
		fmt.Fprintln(out, "uncovered")
		return
	}
	fmt.Fprintf(out, "%s | %s | matched_by=%s\n", r.Zone.ID, r.Zone.Name, r.MatchedBy)
}

func dash(args []string, i int) string {
	if i >= len(args) || args[i] == "-" {
		return ""
	}
	return args[i]
}
