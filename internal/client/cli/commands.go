package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
)

var errUsage = errors.New("usage")

func (a *App) fail(err error) error {
	fmt.Fprintf(a.out, "error: %v\n", err)
	return err
}

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return errUsage
}

func (a *App) printTodo(t *api.Todo) {
	mark := " "
	if t.Done {
		mark = "x"
	}
	fmt.Fprintf(a.out, "[%s] %s  %s\n", mark, t.ID, t.Title)
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "-Enter name", a.out)
	if err != nil {
		return a.fail(err)
	}
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	if err := a.client.Register(ctx, name, email, password); err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "Registered. You can log in now.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	u, err := a.client.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}

	a.userName = u.Email
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Name)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()
	u, err := a.client.Me(ctx)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "%s <%s> id=%s\n", u.Name, u.Email, u.ID)
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	if title == "" {
		return a.usage("add <title>")
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	t, err := a.client.CreateTodo(ctx, title)
	if err != nil {
		return a.fail(err)
	}
	a.printTodo(t)
	return nil
}

func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()
	list, err := a.client.ListTodos(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No todos.")
		return nil
	}
	for _, t := range list {
		a.printTodo(t)
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("show <id>")
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	t, err := a.client.GetTodo(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}
	a.printTodo(t)
	fmt.Fprintf(a.out, "created %s, updated %s\n", t.CreatedAt.Format("2006-01-02 15:04"), t.UpdatedAt.Format("2006-01-02 15:04"))
	return nil
}

func (a *App) Done(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("done <id>")
	}

	done := true
	ctx, cancel := a.call(ctx)
	defer cancel()
	t, err := a.client.UpdateTodo(ctx, args[0], nil, &done)
	if err != nil {
		return a.fail(err)
	}
	a.printTodo(t)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return a.usage("rename <id> <title>")
	}

	title := strings.Join(args[1:], " ")
	ctx, cancel := a.call(ctx)
	defer cancel()
	t, err := a.client.UpdateTodo(ctx, args[0], &title, nil)
	if err != nil {
		return a.fail(err)
	}
	a.printTodo(t)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delete <id>")
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	if err := a.client.DeleteTodo(ctx, args[0]); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Attach(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("attach <id> <path>")
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	if err := a.client.UploadAttachment(ctx, args[0], data); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Attached %d bytes.\n", len(data))
	return nil
}

// Fetch saves the attachment under downloads/, named after the todo unless
// a name is given.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usage("fetch <id> [name]")
	}
	name := args[0]
	if len(args) == 2 {
		name = args[1]
	}

	ctx, cancel := a.call(ctx)
	defer cancel()
	data, err := a.client.DownloadAttachment(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}

	path, err := filex.SaveInSubdir(downloadsDir, name, data)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}

func (a *App) Logout(context.Context) error {
	a.client.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
