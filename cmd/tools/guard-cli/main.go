package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
)

const defaultServerAddr = "http://localhost:8090"

func main() {
	var (
		serverAddr = flag.String("server", defaultServerAddr, "Адрес командной поверхности")
		command    = flag.String("cmd", "status", "Команда: status, enable, disable, rescan, dump")
		compressed = flag.Bool("gzip", false, "Запрашивать дамп в сжатом виде")
		timeout    = flag.Duration("timeout", 10*time.Second, "Таймаут HTTP-запроса")
	)
	flag.Parse()

	client := &Client{
		base: *serverAddr,
		http: &http.Client{Timeout: *timeout},
	}

	var err error
	switch *command {
	case "status":
		err = client.Status()
	case "enable":
		err = client.Enable()
	case "disable":
		err = client.Disable()
	case "rescan":
		err = client.Rescan()
	case "dump":
		err = client.Dump(*compressed)
	default:
		fmt.Printf("❌ Неизвестная команда: %s\n", *command)
		fmt.Println("Доступные команды: status, enable, disable, rescan, dump")
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("❌ %s: %v", *command, err)
	}
}

// Client — HTTP-клиент командной поверхности.
type Client struct {
	base string
	http *http.Client
}

// Status запрашивает и печатает состояние ядра
func (c *Client) Status() error {
	body, err := c.get("/api/guard/status", false)
	if err != nil {
		return err
	}

	var resp struct {
		Guard struct {
			Enabled        bool   `json:"enabled"`
			TrackedTiles   int    `json:"tracked_tiles"`
			Groups         int    `json:"groups"`
			FreeSlots      int    `json:"free_slots"`
			ActiveJobs     int    `json:"active_jobs"`
			LastRescanTick uint64 `json:"last_rescan_tick"`
			Rescans        uint64 `json:"rescans"`
			Cancelled      uint64 `json:"cancelled"`
		} `json:"guard"`
		Server map[string]interface{} `json:"server"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("разбор ответа: %w", err)
	}

	g := resp.Guard
	state := "выключено"
	if g.Enabled {
		state = "включено"
	}
	fmt.Printf("🛡  Ядро: %s\n", state)
	fmt.Printf("Отслеживаемых тайлов: %d\n", g.TrackedTiles)
	fmt.Printf("Групп: %d (свободных слотов: %d)\n", g.Groups, g.FreeSlots)
	fmt.Printf("Активных задач выемки: %d\n", g.ActiveJobs)
	fmt.Printf("Пересканов: %d (последний на тике %d)\n", g.Rescans, g.LastRescanTick)
	fmt.Printf("Отозвано задач: %d\n", g.Cancelled)
	if uptime, ok := resp.Server["uptime"]; ok {
		fmt.Printf("Сервер работает: %v\n", uptime)
	}
	return nil
}

// Enable включает ядро
func (c *Client) Enable() error {
	if _, err := c.post("/api/guard/enable"); err != nil {
		return err
	}
	fmt.Println("✅ Ядро включено")
	return nil
}

// Disable выключает ядро
func (c *Client) Disable() error {
	if _, err := c.post("/api/guard/disable"); err != nil {
		return err
	}
	fmt.Println("✅ Ядро выключено")
	return nil
}

// Rescan запускает принудительный полный перескан
func (c *Client) Rescan() error {
	start := time.Now()
	if _, err := c.post("/api/guard/rescan"); err != nil {
		return err
	}
	fmt.Printf("✅ Перескан выполнен за %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// Dump печатает отладочный дамп ядра в stdout
func (c *Client) Dump(compressed bool) error {
	path := "/api/guard/dump"
	if compressed {
		path += "?gzip=1"
	}
	body, err := c.get(path, compressed)
	if err != nil {
		return err
	}

	// Переформатируем для читаемости
	var dump interface{}
	if err := json.Unmarshal(body, &dump); err != nil {
		return fmt.Errorf("разбор дампа: %w", err)
	}
	pretty, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}

func (c *Client) get(path string, gzipped bool) ([]byte, error) {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("сервер вернул %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if gzipped {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("распаковка ответа: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

func (c *Client) post(path string) ([]byte, error) {
	resp, err := c.http.Post(c.base+path, "application/json", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("сервер вернул %s", resp.Status)
	}
	return body, nil
}
