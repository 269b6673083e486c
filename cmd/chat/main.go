package main

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/serioha/ai-chatbot/client/apiclient"
	"github.com/serioha/ai-chatbot/client/tui"
	"github.com/serioha/ai-chatbot/config"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("INFO: [Client] Loaded environment from .env file.")
	}
	config.LoadConfig()

	client := apiclient.New(config.AppConfig.Client.ServerURL)
	interval := time.Duration(config.AppConfig.Client.TypingIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 18 * time.Millisecond
	}

	program := tea.NewProgram(
		tui.NewModel(client, interval),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		log.Fatalf("FATAL: [Client] Program failed: %v", err)
	}
}
