package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tetete478/Snipee-sub000/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// Main runs the interactive shell until 'exit' or EOF.
func (a *App) Main(ctx context.Context) {

	printlnFn("Snipee agent (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("snipee > ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: list, mkdir <name>, rmdir <id>, add <folder-id>, rm <id>, sync, exit")

		case "list":
			a.List(ctx)

		case "mkdir":
			if len(args) == 0 {
				printlnFn("Usage: mkdir <name>")
				continue
			}
			f, err := a.collection.CreateFolder(ctx, strings.Join(args, " "))
			if err != nil {
				printlnFn("Error:", err)
				continue
			}
			printlnFn("Created folder", f.ID)

		case "rmdir":
			if len(args) == 0 {
				printlnFn("Usage: rmdir <id>")
				continue
			}
			if err := a.collection.DeleteFolder(ctx, args[0]); err != nil {
				printlnFn("Error:", err)
			}

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <folder-id>")
				continue
			}
			a.AddSnippet(ctx, args[0])

		case "rm":
			if len(args) == 0 {
				printlnFn("Usage: rm <id>")
				continue
			}
			if err := a.collection.DeleteSnippet(ctx, args[0]); err != nil {
				printlnFn("Error:", err)
			}

		case "sync":
			switch err := a.engine.SyncNow(ctx); {
			case err == nil:
				printlnFn("Sync completed")
			case errors.Is(err, common.ErrRoundInFlight):
				printlnFn("Sync already running")
			default:
				printlnFn("Sync failed:", err)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) List(ctx context.Context) {
	folders, err := a.collection.ListFolders(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	if len(folders) == 0 {
		printlnFn("No folders yet")
		return
	}
	for _, f := range folders {
		printlnFn(fmt.Sprintf("[%s] %s", f.ID, f.Name))
		for _, sn := range f.Snippets {
			printlnFn(fmt.Sprintf("  [%s] %s", sn.ID, sn.Title))
		}
	}
}

func (a *App) AddSnippet(ctx context.Context, folderID string) {
	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	content, err := GetMultiline(a.reader, "Content", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	description, err := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return
	}

	sn, err := a.collection.CreateSnippet(ctx, folderID, title, content, description)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Created snippet", sn.ID)
}
