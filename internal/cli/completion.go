package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Commands lists the laborder sub-commands in help order.
var Commands = []struct {
	Name  string
	Usage string
}{
	{"products", "List the product catalog"},
	{"categories", "List product categories"},
	{"cart", "Show the cart"},
	{"add", "Add one unit of a product to the cart"},
	{"remove", "Remove a product from the cart"},
	{"qty", "Set the quantity of a cart line"},
	{"toggle", "Check or uncheck a cart line"},
	{"members", "List members"},
	{"order", "Submit the checked cart lines"},
	{"orders", "Show order history"},
	{"show", "Preview one order"},
	{"delete-order", "Delete an order"},
	{"product-save", "Create or update a product"},
	{"product-delete", "Delete a product"},
	{"member-save", "Create or update a member"},
	{"member-delete", "Delete a member"},
	{"export", "Export order history"},
	{"completion", "Generate shell completion script"},
}

// BashCompletion is the bash completion script for laborder.
const BashCompletion = `#!/bin/bash
# Bash completion for laborder

_laborder_completion() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    local commands="products categories cart add remove qty toggle members order orders show delete-order product-save product-delete member-save member-delete export completion"
    local global_flags="--config --env --log-level --log-format"

    case "${prev}" in
        --config|--env|--out)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        --log-level)
            COMPREPLY=( $(compgen -W "debug info warn error" -- ${cur}) )
            return 0
            ;;
        --log-format)
            COMPREPLY=( $(compgen -W "json text" -- ${cur}) )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "csv xlsx" -- ${cur}) )
            return 0
            ;;
        products)
            COMPREPLY=( $(compgen -W "--search --category" -- ${cur}) )
            return 0
            ;;
        order)
            COMPREPLY=( $(compgen -W "--member --notes" -- ${cur}) )
            return 0
            ;;
        product-save)
            COMPREPLY=( $(compgen -W "--id --name --short-name --manufacturer --catalog-number --capacity --usage-place --category --image-url" -- ${cur}) )
            return 0
            ;;
        member-save)
            COMPREPLY=( $(compgen -W "--id --name --email" -- ${cur}) )
            return 0
            ;;
        export)
            COMPREPLY=( $(compgen -W "--format --out" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- ${cur}) )
            return 0
            ;;
        *)
            ;;
    esac

    if [[ ${cur} == -* ]]; then
        COMPREPLY=( $(compgen -W "${global_flags}" -- ${cur}) )
        return 0
    fi
    COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
    return 0
}

complete -F _laborder_completion laborder
`

// ZshCompletion is the zsh completion script for laborder.
const ZshCompletion = `#compdef laborder

_laborder() {
    local -a commands
    commands=(
        'products:List the product catalog'
        'categories:List product categories'
        'cart:Show the cart'
        'add:Add one unit of a product to the cart'
        'remove:Remove a product from the cart'
        'qty:Set the quantity of a cart line'
        'toggle:Check or uncheck a cart line'
        'members:List members'
        'order:Submit the checked cart lines'
        'orders:Show order history'
        'show:Preview one order'
        'delete-order:Delete an order'
        'product-save:Create or update a product'
        'product-delete:Delete a product'
        'member-save:Create or update a member'
        'member-delete:Delete a member'
        'export:Export order history'
        'completion:Generate shell completion script'
    )

    local -a global_flags
    global_flags=(
        '--config[Configuration file path]:file:_files'
        '--env[Dotenv file path]:file:_files'
        '--log-level[Log level]:level:(debug info warn error)'
        '--log-format[Log format]:format:(json text)'
    )

    _arguments -C \
        '1: :->command' \
        '*:: :->args' \
        $global_flags

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                products)
                    _arguments '--search[Search term]:term:' '--category[Category]:category:'
                    ;;
                order)
                    _arguments '--member[Member id]:member:' '--notes[Order notes]:notes:'
                    ;;
                export)
                    _arguments '--format[Output format]:format:(csv xlsx)' '--out[Output file]:file:_files'
                    ;;
                completion)
                    _values 'shell' bash zsh
                    ;;
            esac
            ;;
    esac
}

_laborder "$@"
`

// WriteCompletion writes the completion script for shell to w.
func WriteCompletion(w io.Writer, shell string) error {
	script, err := completionScript(shell)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, script)
	return err
}

// InstallCompletion installs the completion script under home and returns
// the path written.
func InstallCompletion(home, shell string) (string, error) {
	script, err := completionScript(shell)
	if err != nil {
		return "", err
	}

	var installPath string
	switch shell {
	case "bash":
		installPath = filepath.Join(home, ".bash_completion.d", "laborder")
	case "zsh":
		installPath = filepath.Join(home, ".zsh", "completion", "_laborder")
	}
	if err := os.MkdirAll(filepath.Dir(installPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create completion directory: %w", err)
	}
	if err := os.WriteFile(installPath, []byte(script), 0644); err != nil {
		return "", fmt.Errorf("failed to write completion script: %w", err)
	}
	return installPath, nil
}

func completionScript(shell string) (string, error) {
	switch shell {
	case "bash":
		return BashCompletion, nil
	case "zsh":
		return ZshCompletion, nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell)
	}
}
